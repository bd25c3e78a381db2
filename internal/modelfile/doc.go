// Package modelfile defines the serialized artifact formats the gateway
// accepts: saved feed-forward networks (full model or weights-only
// snapshot) and fitted estimator object graphs.
//
// Both formats are encoding/gob streams. Decoding an estimator is the
// gateway's security-sensitive surface: gob will materialize any type in
// the package's registration set, so uploads are only accepted from
// trusted callers. The registry itself bounds what can be constructed.
package modelfile
