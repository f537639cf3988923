// Package ir defines the mid-level input representation consumed by the
// ownership verifier: functions made of basic blocks, statements operating on
// places, and terminators. The IR arrives already typed and lowered from an
// external front end; this package only models, validates, decodes and prints
// it. No analysis lives here.
package ir
