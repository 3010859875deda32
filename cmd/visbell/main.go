// Package main is the entry point for the visbell visual bell.
package main

func main() {
	Execute()
}
