//go:build linux

package ring_test

import (
	"fmt"
	"strings"

	"github.com/momentics/hioload-ring/ring"
)

func Example() {
	rb, err := ring.New(4096, ring.WithRetry(8, 0))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer rb.Close()

	n, _ := rb.Fill(strings.NewReader("hello, mirrored world"))
	fmt.Println(string(rb.ReadHead()[:5]))
	rb.Consume(n)
	fmt.Println(rb.Empty())
	// Output:
	// hello
	// true
}
