// Package assignment hands out booklets to respondents and stores their
// answers.
//
// Each assignment draws a booklet id uniformly at random and records it in
// a local SQLite database, so administrators can check how evenly the
// booklets were handed out.
package assignment
