/*
 * Copyright 2025 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package error

import (
	"errors"
	"fmt"
	"testing"
)

func TestTypedErrors(t *testing.T) {
	base := errors.New("test")
	t.Run("not found", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", NewNotFoundError(base))
		var nfe *NotFoundError
		if !errors.As(err, &nfe) {
			t.Error("expected NotFoundError")
		}
		if !errors.Is(err, base) {
			t.Error("expected base error in chain")
		}
	})
	t.Run("invalid input", func(t *testing.T) {
		var iie *InvalidInputError
		if !errors.As(NewInvalidInputError(base), &iie) {
			t.Error("expected InvalidInputError")
		}
		var nfe *NotFoundError
		if errors.As(NewInvalidInputError(base), &nfe) {
			t.Error("unexpected NotFoundError")
		}
	})
	t.Run("message", func(t *testing.T) {
		if NewResourceBusyError(base).Error() != "test" {
			t.Error("message mismatch")
		}
	})
}

func TestMultiError(t *testing.T) {
	err := NewMultiError([]error{errors.New("a"), errors.New("b")})
	if err.Error() != "a\nb" {
		t.Errorf("expected %q, got %q", "a\nb", err.Error())
	}
	if len(err.Errors()) != 2 {
		t.Errorf("expected 2 errors, got %d", len(err.Errors()))
	}
}
