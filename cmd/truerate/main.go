// Command truerate scores review credibility and corrects star ratings.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
