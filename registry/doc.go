// Package registry implements the verifier, gene-sequence and organism-design
// registries behind the interfaces in package interfaces.
//
// Each registry owns its records exclusively and guards them with a single
// read/write mutex, so every operation is atomic and totally ordered with
// respect to other operations on the same registry. All authorization and
// existence checks run before any write: a failed call never changes state.
//
// # Authorization
//
//   - VerifierRegistry: the administrator passed to NewVerifierRegistry is the
//     only principal allowed to add or remove verifiers; only current verifiers
//     may verify organisms.
//   - SequenceRegistry: only the current owner may license or transfer a
//     sequence. After a transfer the previous owner has no authority left.
//   - DesignRegistry: only the creator may add contributors; any contributor
//     may add sequence references.
//
// # Identifiers
//
// Sequence and design ids start at 1 and are allocated under the registry write
// lock together with the insert, so they are unique and strictly increasing.
// A call rejected before allocation (an empty sequence payload) does not consume
// an id.
//
// # Weak references
//
// Designs store sequence ids without dereferencing them. Construct the design
// registry with WithSequenceValidation to reject unknown ids instead.
//
// # Usage Example
//
//	regs := registry.New(admin, false)
//
//	_ = regs.Verifiers.AddVerifier(admin, lab)
//	_ = regs.Verifiers.VerifyOrganism(lab, 1)
//
//	seqID, _ := regs.Sequences.RegisterSequence(alice, "ATCG")
//	designID := regs.Designs.CreateDesign(alice, "E. coli 2.0", "Enhanced E. coli strain")
//	_ = regs.Designs.AddGeneSequence(alice, designID, seqID)
package registry
