// Package stage declares the three pipeline stages and the contract each
// stage implementation satisfies.
package stage
