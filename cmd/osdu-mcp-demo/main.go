// Package main provides the entry point for osdu-mcp-demo.
package main

func main() {
	Execute()
}
