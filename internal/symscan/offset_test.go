package symscan

import "testing"

func TestOffset(t *testing.T) {
	if got := offset(42); got != 42 {
		t.Errorf("offset(42) = %d", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("negative offset did not panic")
		}
	}()
	offset(-1)
}
