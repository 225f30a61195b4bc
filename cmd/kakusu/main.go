// Package main provides the entry point for the kakusu CLI.
//
// kakusu finds the stroke patterns of a given name that two Japanese name
// fortune sites rate highest for a fixed surname.
//
// Usage:
//
//	kakusu analyze <surname> --chars 2
//	kakusu fortune <surname> <given-name>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
