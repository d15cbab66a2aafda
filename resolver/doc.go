// Package resolver holds the domain resolvers consulted before web search.
//
// BookResolver answers recommendation, author and genre questions from the
// fact store. Specialized resolvers (trading, location) own a topic area and
// are selected by a Classifier, an ordered list of trigger rules where the
// first match wins.
package resolver
