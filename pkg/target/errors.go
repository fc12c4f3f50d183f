// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package target

import (
	"strings"

	apperrors "github.com/NVIDIA/rollout/pkg/errors"
)

func invalidTarget(field, value string, msgs []string) error {
	return apperrors.NewWithContext(
		apperrors.ErrCodeInvalidTarget,
		"invalid "+field+": "+strings.Join(msgs, "; "),
		map[string]any{
			"field": field,
			"value": value,
		},
	)
}

func invalidTargetCause(field, value string, cause error) error {
	return apperrors.WrapWithContext(
		apperrors.ErrCodeInvalidTarget,
		"invalid "+field,
		cause,
		map[string]any{
			"field": field,
			"value": value,
		},
	)
}
