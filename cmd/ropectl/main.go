// Command ropectl loads, edits, replays and measures skip-list ropes.
package main

func main() {
	execute()
}
