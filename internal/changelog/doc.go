// Package changelog validates and normalizes a CHANGELOG.md written in the
// release / change type / entry layout:
//
//	## [v15.0.0] - 2023-11-09
//
//	### Bug Fixes
//
//	- (evm) [#1801](https://github.com/evmos/evmos/pull/1801) Fix the gas used.
//
// This package implements:
//   - Line parsers for release headers, change type headers and entries
//   - A single-pass scan that tracks the current release and change type,
//     detects duplicates and collects every problem in document order
//   - Spelling correction against fixed vocabularies
//   - Fix mode, which rewrites auto-correctable lines in place
//   - Terminal and YAML rendering of the results
package changelog
