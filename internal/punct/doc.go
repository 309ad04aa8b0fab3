// Package punct compiles a set of punctuator literals into a flattened trie table
// that backs a greedy longest-match scanner.
//
// Pipeline: Registry (deduplicated entries) → Build (prefix trie) → Flatten (rows).
//
// Invariants:
//   - Every sibling group occupies a contiguous run of rows, sorted by rune.
//   - Row.Left counts the rows of the same group after this one; the last row has 0.
//   - Row.Next is 0 when the node has no children, otherwise the index of the first
//     row of its child group. Row 0 is never a child-group start, so 0 is free as
//     the "none" marker.
//   - Each row is patched at most once.
//   - The empty literal never enters the trie; it only requests the sentinel row 0.
package punct
