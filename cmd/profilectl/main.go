// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command profilectl is the operator-facing CLI over the profile engine: it
// decodes, encodes, validates and diffs proxy profiles from the command
// line, one subcommand per operation.
//
// Usage:
//
//	profilectl decode  -in profile.conf  -out profile.json
//	profilectl encode  -in profile.json  -out profile.conf
//	profilectl validate -in profile.conf
//	profilectl diff    -old old.conf -new new.conf
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"grimm.is/relayprofile/internal/config"
	"grimm.is/relayprofile/internal/typed"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	subcmd := args[0]
	rest := args[1:]

	var err error
	switch subcmd {
	case "decode":
		err = runDecode(rest)
	case "encode":
		err = runEncode(rest)
	case "validate":
		err = runValidate(rest)
	case "diff":
		err = runDiff(rest)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("profilectl %s: %v", subcmd, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: profilectl <decode|encode|validate|diff> [flags]")
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	in := fs.String("in", "", "profile text file (default: stdin)")
	out := fs.String("out", "", "JSON output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := readInput(*in)
	if err != nil {
		return err
	}

	profile, err := typed.DecodeProfile(data)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(*out, encoded)
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	in := fs.String("in", "", "profile JSON file (default: stdin)")
	out := fs.String("out", "", "profile text output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := readInput(*in)
	if err != nil {
		return err
	}

	var profile typed.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return fmt.Errorf("decoding profile JSON: %w", err)
	}

	return writeOutput(*out, typed.EncodeProfile(&profile))
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	in := fs.String("in", "", "profile text file (default: stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := readInput(*in)
	if err != nil {
		return err
	}

	if _, err := typed.DecodeProfile(data); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func runDiff(args []string) error {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	oldPath := fs.String("old", "", "previous profile text file")
	newPath := fs.String("new", "", "new profile text file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *oldPath == "" || *newPath == "" {
		return fmt.Errorf("both -old and -new are required")
	}

	oldData, err := os.ReadFile(*oldPath)
	if err != nil {
		return err
	}
	newData, err := os.ReadFile(*newPath)
	if err != nil {
		return err
	}

	oldProfile, err := typed.DecodeProfile(oldData)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", *oldPath, err)
	}
	newProfile, err := typed.DecodeProfile(newData)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", *newPath, err)
	}

	diff := config.DiffProfiles(oldProfile, newProfile)
	if !diff.HasChanges() {
		fmt.Println("no changes")
		return nil
	}

	encoded, err := json.MarshalIndent(diff, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0644)
}
