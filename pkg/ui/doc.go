// Package ui holds the small terminal helpers the igauth CLI uses: colored
// output, prompts and opening the authorization URL in a browser.
package ui
