// phenosim runs cell phenotype simulations described by YAML scenario files
// and records their step series and reports.
package main

func main() {
	Execute()
}
