//go:build stretchdebug

package stretch

import "fmt"

func checkFrames(name string, n, channels int) {
	if n%channels != 0 {
		panic(fmt.Sprintf("stretch: %s length %d is not a multiple of %d channels", name, n, channels))
	}
}
