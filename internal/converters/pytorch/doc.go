// Package pytorch converts saved feed-forward network artifacts to the
// interchange format. The artifact must be a full model (architecture
// plus parameters); weights-only snapshots are rejected with a hint,
// mirroring the save-the-full-model requirement callers are used to.
package pytorch
