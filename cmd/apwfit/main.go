// Public domain.

// Command apwfit fits a Bayesian apparent polar wander path to a
// compilation of paleomagnetic poles.
package main

import "github.com/duserzym/mcplates/internal/apwprog"

func main() {
	apwprog.Main()
}
