// Package banner renders the startup banner.
package banner

import "fmt"

const art = `
 _
| |__  _ __ ___  _ __ ___
| '_ \| '_ ' _ \| '_ ' _ \
| | | | | | | | | | | | | |
|_| |_|_| |_| |_|_| |_| |_|
`

// Banner returns the banner text for the given version.
func Banner(version string) string {
	return fmt.Sprintf("%s  hidden markov models  %s\n\n", art, version)
}
