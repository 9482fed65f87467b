// Package tregex finds nodes of labeled ordered trees that satisfy
// structural patterns, in the style of the Stanford Tregex language.
//
// A pattern names a node by its label and constrains its neighbours through
// relations:
//
//	NP < DT $++ VP           an NP with a DT child, followed by a VP sister
//	@NP < /^NN/=noun         basic category NP with a noun child, bound to "noun"
//	S [< NP | < VP]          an S with an NP child or a VP child
//	VP !<< VBG               a VP not dominating a VBG
//	/^(.*)-([0-9]+)$/#2%i .. /-([0-9]+)$/#1%i
//	                         two coindexed nodes in order
//
// # Pipeline
//
// Patterns are compiled once into an immutable [Query]:
//
//	q, err := tregex.Compile("NP $+ VP")
//	if err != nil { ... }
//
// Each tree is searched by its own [Matcher]. Successive calls to
// [Matcher.Find] enumerate matches in preorder of the matched anchor;
// bindings read from the matcher describe the latest match until the next
// call:
//
//	t := tregex.MustParseTree("(S (NP (NNP Bank)) (VP (VBD called)))")
//	m := q.Matcher(t)
//	for {
//		ok, err := m.Find()
//		if err != nil || !ok {
//			break
//		}
//		n, _ := m.Match()
//		fmt.Println(t.Format(n))
//	}
//
// A Query is safe for concurrent use; a Matcher is not. [Query.Searcher]
// runs one query over many trees with a bounded worker pool.
//
// # Relations
//
// Relations are built by [GetRelation] and compared with [RelationsEqual].
// They cover dominance (<<, >>, <, >), precedence (.., ., ,,, ,), sisters
// ($, $++, $--, $+, $-), leftmost and rightmost descendants, only children,
// unary chains, heads (>>#, <<#, >#, <#), indexed children (<2, >-1),
// unbroken category paths (<+(C), >+(C), .+(C), ,+(C)), identity (==, <=)
// and the segmenting ':' used between independent top-level patterns.
//
// # Capabilities
//
// Head relations consult a [HeadFinder]; '@' descriptions consult a
// [BasicCategoryFunc]. [NewCompiler] defaults to the Collins head rules and
// [PennBasicCategory].
//
// # Errors
//
// No match is reported as false with a nil error. Errors wrap [ErrConfig],
// [ErrUsage] or [ErrSyntax].
package tregex
