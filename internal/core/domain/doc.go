// Package domain contains the core business entities of the evidence
// pipeline: bibliographic records, evidence chunks, references, study-type
// classification and the option/result types of the driving operations.
// It has no dependencies on adapters or infrastructure.
package domain
