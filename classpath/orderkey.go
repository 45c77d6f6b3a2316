package classpath

import (
	"fmt"
	"strconv"
)

// OrderKey is a zero-padded, dot-separated precedence key. String
// comparison of two OrderKeys agrees with their intended classpath
// precedence order: a key is always less than any of its own children's
// keys, and siblings compare in numeric order because they share a
// padding width derived from their sibling count.
type OrderKey string

// RootKey builds the OrderKey for the index-th of total top-level
// classpath entries.
func RootKey(index, total int) OrderKey {
	return OrderKey(pad(index, digitsFor(total)))
}

// Child builds the OrderKey for the index-th of total manifest-referenced
// entries expanded from the element identified by k.
func (k OrderKey) Child(index, total int) OrderKey {
	return k + "." + OrderKey(pad(index, digitsFor(total)))
}

func digitsFor(total int) int {
	if total <= 1 {
		return 1
	}
	return len(strconv.Itoa(total - 1))
}

func pad(index, width int) string {
	return fmt.Sprintf("%0*d", width, index)
}
