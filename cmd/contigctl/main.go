// Command contigctl allocates and inspects pinned cache-friendly memory blocks.
package main

func main() {
	execute()
}
