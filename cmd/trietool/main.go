// Command trietool manages on-disk double-array tries: add, delete, and
// query entries, and list everything a trie holds.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/colin0000007/datrie-go"
	"github.com/colin0000007/datrie-go/charset"
	"github.com/dustin/go-humanize"
)

const version = "1.0.0"

var commandAliases = map[string]string{
	"a": "add",
	"d": "delete",
	"q": "query",
	"l": "list",
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("trietool: ")

	path := flag.String("p", ".", "directory holding the trie's .tri/.abm files")
	help := flag.Bool("h", false, "show usage")
	showVersion := flag.Bool("V", false, "show version")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}
	args := flag.Args()
	if *help || len(args) == 0 {
		usage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}
	rest := args[1:]

	var err error
	switch cmd {
	case "add":
		err = addCommand(*path, rest)
	case "add-list":
		err = addListCommand(*path, rest)
	case "delete":
		err = deleteCommand(*path, rest)
	case "delete-list":
		err = deleteListCommand(*path, rest)
	case "query":
		err = queryCommand(*path, rest)
	case "list":
		err = listCommand(*path, rest)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func usage() {
	fmt.Print(`usage: trietool [-p DIR] COMMAND TRIE_NAME [ARGS...]

commands:
  add TRIE_NAME KEY DATA
      Add an entry to the trie
  add-list [-e ENC] TRIE_NAME LISTFILE
      Add words and data listed in LISTFILE to the trie
  delete TRIE_NAME KEY
      Delete an entry from the trie
  delete-list [-e ENC] TRIE_NAME LISTFILE
      Delete words listed in LISTFILE from the trie
  query TRIE_NAME KEY
      Query a trie for a key, printing its data if found
  list TRIE_NAME
      List all entries stored in the trie

options:
  -p DIR    directory holding TRIE_NAME.tri/.abm (default ".")
  -e ENC    character encoding of LISTFILE (add-list/delete-list only)
  -h        show this help
  -V        show version
`)
}

func addCommand(dir string, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("add requires TRIE_NAME KEY DATA")
	}
	data, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("data %q is not an integer: %w", args[2], err)
	}
	t, err := datrie.OpenOrCreate(dir, args[0])
	if err != nil {
		return err
	}
	if !t.Store([]rune(args[1]), int32(data)) {
		return fmt.Errorf("failed to add key %q", args[1])
	}
	return datrie.SaveIfDirty(t, dir, args[0])
}

func addListCommand(dir string, args []string) error {
	fs := flag.NewFlagSet("add-list", flag.ContinueOnError)
	enc := fs.String("e", "UTF-8", "character encoding of LISTFILE")
	fs.StringVar(enc, "encoding", "UTF-8", "character encoding of LISTFILE")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("add-list requires TRIE_NAME LISTFILE")
	}
	t, err := datrie.OpenOrCreate(dir, rest[0])
	if err != nil {
		return err
	}
	if err := eachListEntry(*enc, rest[1], func(key string, data int32) error {
		if !t.Store([]rune(key), data) {
			log.Printf("failed to add key %q", key)
		}
		return nil
	}); err != nil {
		return err
	}
	return datrie.SaveIfDirty(t, dir, rest[0])
}

func deleteCommand(dir string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("delete requires TRIE_NAME KEY")
	}
	t, err := datrie.OpenOrCreate(dir, args[0])
	if err != nil {
		return err
	}
	if !t.Delete([]rune(args[1])) {
		return fmt.Errorf("key %q not found", args[1])
	}
	return datrie.SaveIfDirty(t, dir, args[0])
}

func deleteListCommand(dir string, args []string) error {
	fs := flag.NewFlagSet("delete-list", flag.ContinueOnError)
	enc := fs.String("e", "UTF-8", "character encoding of LISTFILE")
	fs.StringVar(enc, "encoding", "UTF-8", "character encoding of LISTFILE")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("delete-list requires TRIE_NAME LISTFILE")
	}
	t, err := datrie.OpenOrCreate(dir, rest[0])
	if err != nil {
		return err
	}
	if err := eachListEntry(*enc, rest[1], func(key string, _ int32) error {
		if !t.Delete([]rune(key)) {
			log.Printf("key %q not found", key)
		}
		return nil
	}); err != nil {
		return err
	}
	return datrie.SaveIfDirty(t, dir, rest[0])
}

func queryCommand(dir string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("query requires TRIE_NAME KEY")
	}
	t, err := datrie.OpenOrCreate(dir, args[0])
	if err != nil {
		return err
	}
	data, found := t.Retrieve([]rune(args[1]))
	if !found {
		return fmt.Errorf("key %q not found", args[1])
	}
	fmt.Println(data)
	return nil
}

func listCommand(dir string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("list requires TRIE_NAME")
	}
	t, err := datrie.OpenOrCreate(dir, args[0])
	if err != nil {
		return err
	}
	count := 0
	t.Enumerate(func(key []rune, data int32) bool {
		fmt.Printf("%s\t%d\n", string(key), data)
		count++
		return true
	})
	if info, err := os.Stat(triPathFor(dir, args[0])); err == nil {
		fmt.Printf("%d entries, %s on disk\n", count, humanize.Bytes(uint64(info.Size())))
	} else {
		fmt.Printf("%d entries\n", count)
	}
	return nil
}

func triPathFor(dir, name string) string {
	return dir + string(os.PathSeparator) + name + ".tri"
}

// eachListEntry reads lines of the form "KEY DATA" from path, transcoding
// them from enc, and calls fn for each.
func eachListEntry(enc, path string, fn func(key string, data int32) error) error {
	codec, err := charset.Lookup(enc)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open list file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(charset.DecodingReader(codec, f))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		key := fields[0]
		var data int32
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err == nil {
				data = int32(n)
			}
		}
		if err := fn(key, data); err != nil {
			return err
		}
	}
	return scanner.Err()
}
