// Package extract implements the three signal extractors of the risk
// engine: age-gap anomalies over connections, minor-targeted
// content-consumption ratios (with shared-content clustering), and
// temporal patterns of that consumption.
//
// Extractors are stateless functions over a frozen graph snapshot plus a
// policy. They never mutate shared state, so the engine runs them in
// parallel; given the same snapshot and policy they always produce the
// same signals in the same order.
package extract
