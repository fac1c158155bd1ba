/*
Package mangle implements the GLSLT fingerprint/mangler (spec.md §4.4):
a deterministic, collision-resistant digest over a template call's
resolved arguments, and the stable mangled-identifier scheme built on
top of it.

The digest is a keyed BLAKE2b-128 sum (golang.org/x/crypto/blake2b) over
a canonical byte serialization — cryptographic, not a hand-rolled hash,
per spec.md §4.4's requirement that fingerprints be collision-resistant
and independent of address or traversal timing.
*/
package mangle

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/glslt-dev/glslt/ast"
	"github.com/glslt-dev/glslt/internal/resolve"
	"github.com/glslt-dev/glslt/internal/scope"
)

// hashKey is a fixed, build-time constant, not a secret: blake2b's
// keyed mode is used only to get a clean 128-bit domain-separated
// digest, not for any authentication property.
var hashKey = []byte("glslt-fingerprint-v1")

// CaptureSet assigns a stable ordinal to each distinct captured symbol
// discovered while resolving a template call's pointer-parameter
// bindings, in left-to-right, depth-first lexical order (spec.md §3
// Invariant 3). Ordinals are assigned once per call and then reused by
// the mangler (for fingerprinting) and the instantiator (for the
// specialization's appended parameter list) alike.
type CaptureSet struct {
	order []scope.Symbol
	index map[string]int
}

// Symbols returns the captured symbols in ordinal order.
func (c *CaptureSet) Symbols() []scope.Symbol {
	return c.order
}

// Ordinal returns the ordinal assigned to name. It panics if name was
// never recorded — callers only ask about captures BuildCaptureSet
// already walked.
func (c *CaptureSet) Ordinal(name string) int {
	ord, ok := c.index[name]
	if !ok {
		panic(fmt.Sprintf("mangle: capture %q has no assigned ordinal", name))
	}
	return ord
}

// BuildCaptureSet walks bindings (already in pointer-parameter order)
// left-to-right, depth-first, recording the first occurrence of every
// distinct captured symbol name.
func BuildCaptureSet(bindings []*resolve.Binding) *CaptureSet {
	c := &CaptureSet{index: map[string]int{}}
	for _, b := range bindings {
		if b.Kind != resolve.BindLambda {
			continue
		}
		for _, a := range b.LambdaArgs {
			c.walk(a)
		}
	}
	return c
}

func (c *CaptureSet) walk(a *resolve.ArgTemplate) {
	switch a.Kind {
	case resolve.ArgCapture:
		if _, ok := c.index[a.Capture.Name]; !ok {
			c.index[a.Capture.Name] = len(c.order)
			c.order = append(c.order, a.Capture)
		}
	case resolve.ArgCall:
		for _, sub := range a.Args {
			c.walk(sub)
		}
	case resolve.ArgBinary:
		c.walk(a.Left)
		c.walk(a.Right)
	case resolve.ArgDot, resolve.ArgIndex:
		c.walk(a.X)
		if a.Kind == resolve.ArgIndex {
			c.walk(a.Index)
		}
	}
}

// Fingerprint computes the canonical digest of a template call:
// templateName plus its ordered, resolved pointer-parameter bindings
// (spec.md §4.4).
func Fingerprint(templateName string, bindings []*resolve.Binding, captures *CaptureSet) [16]byte {
	buf := []byte(templateName)
	buf = append(buf, '|')
	for _, b := range bindings {
		buf = appendBinding(buf, b, captures)
		buf = append(buf, ';')
	}
	h, err := blake2b.New(16, hashKey)
	if err != nil {
		// Only possible if hashKey exceeds blake2b's 64-byte key limit,
		// which it never does; a panic here means hashKey was edited
		// without checking that constraint.
		panic(err)
	}
	h.Write(buf)
	var out [16]byte
	copy(out[:], h.Sum(nil))
	return out
}

func appendBinding(buf []byte, b *resolve.Binding, captures *CaptureSet) []byte {
	switch b.Kind {
	case resolve.BindStatic:
		buf = append(buf, 'S', ':')
		return append(buf, b.StaticName...)
	case resolve.BindLambda:
		buf = append(buf, 'L', ':')
		buf = append(buf, exprText(b.LambdaCallee)...)
		buf = append(buf, ':')
		for i, a := range b.LambdaArgs {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendArg(buf, a, captures)
		}
		return buf
	default:
		panic("mangle: unknown binding kind")
	}
}

func appendArg(buf []byte, a *resolve.ArgTemplate, captures *CaptureSet) []byte {
	switch a.Kind {
	case resolve.ArgPlaceholder:
		return fmt.Appendf(buf, "P:%d", a.PlaceholderIndex)
	case resolve.ArgCapture:
		return fmt.Appendf(buf, "C:%d:%s", captures.Ordinal(a.Capture.Name), a.Capture.Type.String())
	case resolve.ArgFree:
		return fmt.Appendf(buf, "F:%s", a.FreeName)
	case resolve.ArgLeaf:
		return fmt.Appendf(buf, "O:%s", exprText(a.Leaf))
	case resolve.ArgCall:
		buf = append(buf, '(')
		buf = append(buf, exprText(a.Callee)...)
		for _, sub := range a.Args {
			buf = append(buf, ',')
			buf = appendArg(buf, sub, captures)
		}
		return append(buf, ')')
	case resolve.ArgBinary:
		buf = append(buf, '(')
		buf = appendArg(buf, a.Left, captures)
		buf = append(buf, a.Op...)
		buf = appendArg(buf, a.Right, captures)
		return append(buf, ')')
	case resolve.ArgDot:
		buf = appendArg(buf, a.X, captures)
		buf = append(buf, '.')
		return append(buf, a.Field...)
	case resolve.ArgIndex:
		buf = appendArg(buf, a.X, captures)
		buf = append(buf, '[')
		buf = appendArg(buf, a.Index, captures)
		return append(buf, ']')
	default:
		panic("mangle: unknown arg kind")
	}
}

// exprText renders e as a stable, canonical token sequence. It is only
// ever used for fingerprinting and mangled-name derivation, never for
// re-serializing GLSL (that remains the external AST library's job).
func exprText(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.Opaque:
		return x.Text
	case *ast.CallExpr:
		parts := make([]string, len(x.Args))
		for i, a := range x.Args {
			parts[i] = exprText(a)
		}
		return exprText(x.Callee) + "(" + joinComma(parts) + ")"
	case *ast.BinaryExpr:
		return "(" + exprText(x.Left) + x.Op + exprText(x.Right) + ")"
	case *ast.DotExpr:
		return exprText(x.X) + "." + x.Field
	case *ast.IndexExpr:
		return exprText(x.X) + "[" + exprText(x.Index) + "]"
	default:
		panic("mangle: unsupported expression in exprText")
	}
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}

// Name derives a specialization's mangled identifier. prefix is the
// configured identifier_prefix (spec.md §6); templateName and
// fingerprint identify the specialization. existing reports whether a
// candidate of suffixLen hex digits is already taken by a *different*
// fingerprint in the store, so Name can extend the suffix on collision
// (spec.md §4.4).
func Name(prefix, templateName string, fingerprint [16]byte, existing func(candidate string) (taken bool, sameFingerprint bool)) string {
	full := hex.EncodeToString(fingerprint[:])
	for suffixLen := 6; suffixLen <= len(full); suffixLen += 2 {
		candidate := fmt.Sprintf("%s%s_%s", prefix, templateName, full[:suffixLen])
		taken, same := existing(candidate)
		if !taken || same {
			return candidate
		}
	}
	// Exhausting the full digest without a free name is cryptographically
	// implausible; fall back to the full digest deterministically.
	return fmt.Sprintf("%s%s_%s", prefix, templateName, full)
}
