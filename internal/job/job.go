// Package job reads job files and resolves the parameters of each job.
//
// A job file is a Java-style properties file with keys of the form
// <job>.<attribute>. Keys with an empty job segment (".url", ".driver")
// belong to the default job, whose url and driver are used by every job
// that does not set its own.
package job

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/magiconair/properties"
)

// Attributes recognized in a job file.
const (
	AttrURL    = "url"
	AttrSQL    = "sql"
	AttrOut    = "out"
	AttrDriver = "driver"
)

var (
	ErrURLRequired = errors.New("url is required")
	ErrJobNotFound = errors.New("job not found")
)

// Job holds the resolved parameters of one export.
type Job struct {
	Name   string
	URL    string
	SQL    string
	Out    string
	Driver string
}

// attributes are the values set for one job in the file.
type attributes map[string]string

// File is a parsed job file.
type File struct {
	// Path is the file the jobs were loaded from, empty for in-memory files.
	Path string

	defaults attributes
	jobs     map[string]attributes
	warnings []string
	expand   func(string) (string, error)
}

// Option configures how a File resolves jobs.
type Option func(*File)

// WithExpander expands variable references in resolved urls.
func WithExpander(expand func(string) (string, error)) Option {
	return func(f *File) {
		f.expand = expand
	}
}

// Load reads a job file. Property expansion is disabled so values are taken
// literally.
func Load(path string, opts ...Option) (*File, error) {
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load job file %s: %w", path, err)
	}
	f := Parse(props, opts...)
	f.Path = path
	return f, nil
}

// LoadString parses job file content.
func LoadString(content string, opts ...Option) (*File, error) {
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadBytes([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse job file: %w", err)
	}
	return Parse(props, opts...), nil
}

// Parse groups properties by job name. A key names a job when it contains a
// dot after its first character; the text before the last dot is the job
// name and the text after it the attribute.
func Parse(props *properties.Properties, opts ...Option) *File {
	f := &File{
		defaults: attributes{},
		jobs:     make(map[string]attributes),
	}
	for _, opt := range opts {
		opt(f)
	}

	for _, key := range props.Keys() {
		value, _ := props.Get(key)
		dot := strings.LastIndex(key, ".")
		switch {
		case dot < 0:
			f.warnings = append(f.warnings, fmt.Sprintf("Ignoring key without job name: %s", key))
			continue
		case dot == 0:
			attr := key[1:]
			if attr != AttrURL && attr != AttrDriver {
				f.warnings = append(f.warnings, fmt.Sprintf("Ignoring default attribute %s: only url and driver have defaults", key))
				continue
			}
			f.defaults[attr] = value
			continue
		}

		name, attr := key[:dot], key[dot+1:]
		attrs, ok := f.jobs[name]
		if !ok {
			attrs = attributes{}
			f.jobs[name] = attrs
		}
		switch attr {
		case AttrURL, AttrSQL, AttrOut, AttrDriver:
			attrs[attr] = value
		default:
			f.warnings = append(f.warnings, fmt.Sprintf("Unknown attribute %s of job %s", attr, name))
		}
	}

	return f
}

// Names returns the job names in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.jobs))
	for name := range f.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Warnings returns the problems found while parsing.
func (f *File) Warnings() []string {
	return f.warnings
}

// Lookup returns the value of attr for the named job. url and driver fall
// back to the default job; sql and out do not. Blank values count as unset.
func (f *File) Lookup(name, attr string) (string, bool) {
	if v, ok := nonBlank(f.jobs[name], attr); ok {
		return v, true
	}
	if attr != AttrURL && attr != AttrDriver {
		return "", false
	}
	return nonBlank(f.defaults, attr)
}

func nonBlank(attrs attributes, attr string) (string, bool) {
	v, ok := attrs[attr]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Resolve returns the parameters of the named job. A missing sql defaults
// to "SELECT * FROM <name>", a missing out to "<name>.json". A missing url
// is an error.
func (f *File) Resolve(name string) (*Job, error) {
	if _, ok := f.jobs[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	job := &Job{Name: name}

	url, ok := f.Lookup(name, AttrURL)
	if !ok {
		return nil, fmt.Errorf("job %s: %w", name, ErrURLRequired)
	}
	if f.expand != nil {
		expanded, err := f.expand(url)
		if err != nil {
			return nil, fmt.Errorf("job %s: failed to expand url: %w", name, err)
		}
		url = expanded
	}
	job.URL = url

	if sql, ok := f.Lookup(name, AttrSQL); ok {
		job.SQL = sql
	} else {
		job.SQL = "SELECT * FROM " + name
	}

	if out, ok := f.Lookup(name, AttrOut); ok {
		job.Out = out
	} else {
		job.Out = name + ".json"
	}

	job.Driver, _ = f.Lookup(name, AttrDriver)

	return job, nil
}
