// Command polysumm summarizes research papers and answers questions about
// them. Without a subcommand it opens the terminal UI.
package main

func main() {
	Execute()
}
