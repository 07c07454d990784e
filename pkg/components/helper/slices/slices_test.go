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

package slices

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRemoveDuplicates(t *testing.T) {
	require.Equal(t, []int64{3, 1, 2}, RemoveDuplicates([]int64{3, 1, 3, 2, 1}))
	require.Equal(t, []string{"a"}, RemoveDuplicates([]string{"a"}))
	require.Empty(t, RemoveDuplicates([]int64(nil)))
}

func TestToAnySlice(t *testing.T) {
	require.Equal(t, []any{int64(1), int64(2)}, ToAnySlice([]int64{1, 2}))
	require.Empty(t, ToAnySlice([]string{}))
}

func TestGenQuestionMarks(t *testing.T) {
	require.Equal(t, "", GenQuestionMarks(0))
	require.Equal(t, "", GenQuestionMarks(-1))
	require.Equal(t, "?", GenQuestionMarks(1))
	require.Equal(t, "?, ?, ?", GenQuestionMarks(3))
}

func TestBoolToInt(t *testing.T) {
	require.Equal(t, 1, BoolToInt(true))
	require.Equal(t, 0, BoolToInt(false))
}
