// triagectl runs the repair triage engine over snapshot files.
package main

import "os"

func main() {
	os.Exit(execute())
}
