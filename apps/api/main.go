// Command api serves the Profe Web pages, JSON API and video webhooks.
package main

func main() {
	startWithDig()
}
