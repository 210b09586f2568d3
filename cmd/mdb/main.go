// Package main is the entry point for the mdb server and its command-line client.
package main

func main() {
	execute()
}
