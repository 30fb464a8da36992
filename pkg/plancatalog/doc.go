// Package plancatalog resolves the price and display metadata for a plan
// slug. A static fallback table is authoritative unless a dynamic backend
// lookup yields a resolvable positive amount, in which case the backend
// value wins. A slug with no amount from either side is a hard failure:
// paid checkout flows must never proceed with an unknown amount.
package plancatalog
