// Package runtimelib holds the handful of libc functions the supported C
// subset may call (spec.md §6's Non-goals keep most of libc out of scope,
// but strlen/memcpy/malloc/free and friends are common enough in real C
// snippets that they get Rust-native stand-ins, appended to an emitted program
// for the ones it calls, rather than an extern "C" FFI hop).
//
// The emit/emitRaw verbatim-text-block pattern, and the idea of a Config
// struct selecting which fragments a given translation unit actually needs,
// are grounded on purple_go/pkg/codegen/runtime.go's RuntimeGenerator and
// RuntimeConfig: that generator likewise holds a fixed menu of named
// fragments and a config of which to emit, decided from analysis results
// rather than user flags.
package runtimelib

import (
	"fmt"
	"io"
	"sort"
)

// Config selects which runtime fragments a translation unit needs, decided
// from which libc call names the translated program contains (never from
// user flags, mirroring RuntimeConfig's auto-decide discipline).
type Config struct {
	Needed map[string]bool
}

// NewConfig returns an empty Config; call Need for every libc identifier the
// emitted program calls.
func NewConfig() *Config {
	return &Config{Needed: make(map[string]bool)}
}

// deps maps a fragment to the other fragments its own Rust body calls, so
// Need can pull in the whole transitive closure rather than emitting a
// dangling call to an undefined rt_* function.
var deps = map[string][]string{
	"strcat":  {"strlen"},
	"strncat": {"strlen"},
	"atoi":    {"strtol"},
	"atol":    {"strtol"},
	"atof":    {"strtod"},
}

// Need records that name (e.g. "strlen") must have a fragment emitted, along
// with every fragment name's own body transitively calls.
func (c *Config) Need(name string) {
	if _, ok := fragments[name]; !ok {
		return
	}
	if c.Needed[name] {
		return
	}
	c.Needed[name] = true
	for _, dep := range deps[name] {
		c.Need(dep)
	}
}

// fragments maps a libc function name to the Rust source implementing it.
// Every fragment is self-contained (no dependency on another fragment except
// where noted) so Generate can emit exactly the needed subset, each in
// alphabetical order for deterministic output.
var fragments = map[string]string{
	"malloc": `fn rt_malloc(size: usize) -> *mut u8 {
    let layout = std::alloc::Layout::from_size_align(size.max(1), 8).unwrap();
    unsafe { std::alloc::alloc(layout) }
}
`,
	"free": `unsafe fn rt_free(ptr: *mut u8, size: usize) {
    let layout = std::alloc::Layout::from_size_align(size.max(1), 8).unwrap();
    std::alloc::dealloc(ptr, layout);
}
`,
	"strlen": `unsafe fn rt_strlen(s: *const u8) -> usize {
    let mut n = 0usize;
    while *s.add(n) != 0 {
        n += 1;
    }
    n
}
`,
	"memchr": `unsafe fn rt_memchr(s: *const u8, c: u8, n: usize) -> *const u8 {
    for i in 0..n {
        if *s.add(i) == c {
            return s.add(i);
        }
    }
    std::ptr::null()
}
`,
	"memcmp": `unsafe fn rt_memcmp(a: *const u8, b: *const u8, n: usize) -> i32 {
    for i in 0..n {
        let (x, y) = (*a.add(i), *b.add(i));
        if x != y {
            return x as i32 - y as i32;
        }
    }
    0
}
`,
	"memcpy": `unsafe fn rt_memcpy(dst: *mut u8, src: *const u8, n: usize) -> *mut u8 {
    std::ptr::copy_nonoverlapping(src, dst, n);
    dst
}
`,
	"memmove": `unsafe fn rt_memmove(dst: *mut u8, src: *const u8, n: usize) -> *mut u8 {
    std::ptr::copy(src, dst, n);
    dst
}
`,
	"strcat": `unsafe fn rt_strcat(dst: *mut u8, src: *const u8) -> *mut u8 {
    let base = rt_strlen(dst);
    let mut i = 0usize;
    loop {
        let c = *src.add(i);
        *dst.add(base + i) = c;
        if c == 0 {
            break;
        }
        i += 1;
    }
    dst
}
`,
	"strncat": `unsafe fn rt_strncat(dst: *mut u8, src: *const u8, n: usize) -> *mut u8 {
    let base = rt_strlen(dst);
    let mut i = 0usize;
    while i < n && *src.add(i) != 0 {
        *dst.add(base + i) = *src.add(i);
        i += 1;
    }
    *dst.add(base + i) = 0;
    dst
}
`,
	"strchr": `unsafe fn rt_strchr(s: *const u8, c: u8) -> *const u8 {
    let mut i = 0usize;
    loop {
        let ch = *s.add(i);
        if ch == c {
            return s.add(i);
        }
        if ch == 0 {
            return std::ptr::null();
        }
        i += 1;
    }
}
`,
	"strcmp": `unsafe fn rt_strcmp(a: *const u8, b: *const u8) -> i32 {
    let mut i = 0usize;
    loop {
        let (x, y) = (*a.add(i), *b.add(i));
        if x != y {
            return x as i32 - y as i32;
        }
        if x == 0 {
            return 0;
        }
        i += 1;
    }
}
`,
	"atoi": `unsafe fn rt_atoi(s: *const u8) -> i32 {
    rt_strtol(s) as i32
}
`,
	"atol": `unsafe fn rt_atol(s: *const u8) -> i64 {
    rt_strtol(s)
}
`,
	"atof": `unsafe fn rt_atof(s: *const u8) -> f64 {
    rt_strtod(s)
}
`,
	"strtod": `unsafe fn rt_strtod(s: *const u8) -> f64 {
    let mut i = 0usize;
    let mut buf = String::new();
    while *s.add(i) != 0 && (((*s.add(i) as char).is_ascii_digit()) || *s.add(i) == b'.' || *s.add(i) == b'-') {
        buf.push(*s.add(i) as char);
        i += 1;
    }
    buf.parse::<f64>().unwrap_or(0.0)
}
`,
	"strtol": `unsafe fn rt_strtol(s: *const u8) -> i64 {
    let mut i = 0usize;
    let mut buf = String::new();
    while *s.add(i) != 0 && (((*s.add(i) as char).is_ascii_digit()) || *s.add(i) == b'-') {
        buf.push(*s.add(i) as char);
        i += 1;
    }
    buf.parse::<i64>().unwrap_or(0)
}
`,
}

// Generate writes every needed fragment to w, in name-sorted order for
// byte-identical output across runs.
func Generate(w io.Writer, c *Config) error {
	var names []string
	for name, on := range c.Needed {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprint(w, fragments[name]); err != nil {
			return err
		}
	}
	return nil
}
