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

package context_lock

import "testing"

func TestLocker(t *testing.T) {
	l := New()
	if err := l.TryLock(1, "move"); err != nil {
		t.Fatal(err)
	}
	if err := l.TryLock(1, "delete"); err == nil {
		t.Error("expected error")
	}
	if err := l.TryLock(2, "delete"); err != nil {
		t.Error(err)
	}
	if err := l.TryLockAll("disable all"); err == nil {
		t.Error("expected error")
	}
	l.Unlock(1)
	l.Unlock(2)
	l.Unlock(3)
	if err := l.TryLockAll("disable all"); err != nil {
		t.Fatal(err)
	}
	err := l.TryLock(1, "move")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "disable all" {
		t.Errorf("expected %q, got %q", "disable all", err.Error())
	}
	l.UnlockAll()
	if err = l.TryLock(1, "move"); err != nil {
		t.Error(err)
	}
	l.Unlock(1)
}
