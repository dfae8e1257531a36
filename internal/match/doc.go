// Package match provides the string-similarity scorer used to link free-form
// product mentions to official catalog names.
//
// The extractor's 75/90 confidence thresholds assume this scorer's score
// distribution; swapping the algorithm silently changes classification
// behavior.
package match
