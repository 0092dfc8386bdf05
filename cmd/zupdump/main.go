// Command zupdump inspects a zup archive's contents without requiring
// a running server: list a directory, print a file, or extract the
// whole tree to disk.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/docserver/zuparchive/internal/extract"
	"github.com/docserver/zuparchive/internal/reader"
)

func main() {
	list := flag.String("list", "", "list the directory at this archive path")
	read := flag.String("read", "", "print the file at this archive path")
	extractTo := flag.String("extract", "", "extract the full archive tree to this directory")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: zupdump [flags] <archive.zup>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	a, err := reader.Open(args[0])
	if err != nil {
		log.Fatalf("opening archive: %v", err)
	}
	defer a.Close()

	switch {
	case *list != "":
		entries, err := a.ReadDir(reader.SplitPath(*list))
		if err != nil {
			log.Fatalf("listing %q: %v", *list, err)
		}
		for _, e := range entries {
			kind := "file"
			if e.Node.Dir() {
				kind = "dir"
			}
			fmt.Printf("%-5s %10d  %s\n", kind, e.Node.Range.Len, e.Name)
		}
	case *read != "":
		data, err := a.Read(reader.SplitPath(*read))
		if err != nil {
			log.Fatalf("reading %q: %v", *read, err)
		}
		os.Stdout.Write(data)
	case *extractTo != "":
		extractArchive(a, *extractTo)
	default:
		root := a.Root()
		fmt.Printf("root: dir=%v compressed=%v range=(%d,%d)\n",
			root.Dir(), root.Compressed(), root.Range.Offset, root.Range.Len)
	}
}

func extractArchive(a *reader.Archive, dest string) {
	stats, err := extract.To(a, dest)
	if err != nil {
		log.Fatalf("extracting to %q: %v", dest, err)
	}
	fmt.Printf("files %d\n", stats.Files)
	fmt.Printf("bytes %d\n", stats.Bytes)
}
