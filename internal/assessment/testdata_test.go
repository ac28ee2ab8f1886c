package assessment

import (
	"fmt"
	"strings"
)

// testLines returns n valid test lines whose correct answer is option 1.
func testLines(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "Question %d? | right %d | wrong a%d | wrong b%d | wrong c%d | right %d\n", i, i, i, i, i, i)
	}
	return b.String()
}
