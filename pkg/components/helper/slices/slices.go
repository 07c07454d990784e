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

import "strings"

func RemoveDuplicates[S ~[]E, E comparable](sl S) []E {
	if len(sl) < 2 {
		return sl
	}
	set := make(map[E]struct{})
	var sl2 []E
	for _, s := range sl {
		if _, ok := set[s]; !ok {
			sl2 = append(sl2, s)
		}
		set[s] = struct{}{}
	}
	return sl2
}

func ToAnySlice[S ~[]E, E any](sl S) []any {
	anySl := make([]any, len(sl))
	for i, v := range sl {
		anySl[i] = v
	}
	return anySl
}

// GenQuestionMarks returns n comma separated bind placeholders.
func GenQuestionMarks(n int) string {
	if n <= 0 {
		return ""
	}
	if n >= 2 {
		return strings.Repeat("?, ", n-1) + "?"
	}
	return "?"
}

func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
