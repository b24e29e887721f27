// Package core provides the household roster import and export pipeline.
//
// The package has no transport dependencies. It is used by the web layer and
// by tests alike, against any [Directory] implementation.
//
// # Import
//
// A roster file flows through four stages:
//
//  1. [ReadSheet] turns an XLSX or CSV upload into a cell matrix.
//  2. [ResolveRows] finds the header row (the first of at most ten rows
//     carrying a household-number column) and keys each data row by header.
//  3. [GroupHouseholds] folds the rows into households, normalizing every
//     field through a [Normalizer]. Rows without a household number are
//     skipped and reported as warnings.
//  4. [Engine.ImportHouseholds] creates each household in the [Directory],
//     collecting a [Tally] of successes and per-household failures.
//
// Only file-level problems (unreadable or empty sheets) abort a run. Every
// other problem degrades into the tally.
//
// # Schema
//
// Column aliases, header anchors, the month table and enumeration fallbacks
// live in a [Schema]. [DefaultSchema] accepts every known roster layout;
// [LoadSchema] overlays a YAML profile on it.
//
// # Export
//
// [ExportHouseholds] flattens households into one row per member, either as
// a full roster or as a birthday report sorted by day of month.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Codes are grouped as FILE, DIR, VAL, IMP and RATE.
package core
