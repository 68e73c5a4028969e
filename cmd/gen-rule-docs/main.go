// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// gen-rule-docs generates a reference document for every rule kind
// registered in internal/rules: introspect the registry at build time and
// render it in a handful of output formats.
//
// Usage:
//
//	go run ./cmd/gen-rule-docs -format=markdown -output=docs/rule-reference.md
//	go run ./cmd/gen-rule-docs -format=yaml -output=docs/rule-reference.yaml
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"grimm.is/relayprofile/internal/rules"
)

// descriptions gives a human sentence for each built-in tag; Kind itself
// carries no prose, only arity and resource-fetch metadata.
var descriptions = map[string]string{
	rules.TagDomain:        "Matches a connection whose destination hostname equals the expression exactly.",
	rules.TagDomainSuffix:  "Matches a connection whose destination hostname ends with the expression.",
	rules.TagDomainKeyword: "Matches a connection whose destination hostname contains the expression as a substring.",
	rules.TagDomainSet:     "Matches against a list of domains fetched from the expression, which must be an external resource URL.",
	rules.TagRuleSet:       "Matches against a list of rule lines fetched from the expression, which must be an external resource URL.",
	rules.TagGeoIP:         "Matches a connection whose destination IP resolves to the country code named by the expression.",
	rules.TagFinal:         "Matches every connection that reached the end of the rule list without an earlier match.",
}

type kindDoc struct {
	Tag                 string `yaml:"tag"`
	MinFields           int    `yaml:"min_fields"`
	HasExternalResource bool   `yaml:"has_external_resource"`
	Description         string `yaml:"description"`
}

func main() {
	format := flag.String("format", "markdown", "Output format: markdown, yaml")
	output := flag.String("output", "", "Output file (default: stdout)")
	flag.Parse()

	docs := collect(rules.Default)

	var content string
	switch *format {
	case "markdown":
		content = generateMarkdown(docs)
	case "yaml":
		content = generateYAML(docs)
	default:
		fmt.Fprintf(os.Stderr, "unknown format: %s\n", *format)
		os.Exit(1)
	}

	writeOutput(*output, content)
}

func collect(reg *rules.Registry) []kindDoc {
	tags := reg.Tags()
	sort.Strings(tags)

	docs := make([]kindDoc, 0, len(tags))
	for _, tag := range tags {
		k, ok := reg.Lookup(tag)
		if !ok {
			continue
		}
		docs = append(docs, kindDoc{
			Tag:                 k.Label,
			MinFields:           k.MinFields,
			HasExternalResource: k.HasExternalResource,
			Description:         descriptions[k.Label],
		})
	}
	return docs
}

func generateMarkdown(docs []kindDoc) string {
	var b strings.Builder
	b.WriteString("# Rule Kind Reference\n\n")
	b.WriteString("| Tag | Fields | External resource | Description |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, d := range docs {
		b.WriteString(fmt.Sprintf("| `%s` | %d | %t | %s |\n", d.Tag, d.MinFields, d.HasExternalResource, d.Description))
	}
	return b.String()
}

func generateYAML(docs []kindDoc) string {
	data, err := yaml.Marshal(map[string]any{"rule_kinds": docs})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating yaml: %v\n", err)
		os.Exit(1)
	}
	return string(data)
}

func writeOutput(path, content string) {
	if path == "" {
		fmt.Print(content)
		return
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "error creating directory: %v\n", err)
			os.Exit(1)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing file: %v\n", err)
		os.Exit(1)
	}
}
