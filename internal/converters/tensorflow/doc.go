// Package tensorflow converts SavedModel artifacts by shelling out to an
// external converter command. The upload is staged into an ephemeral
// scratch directory shaped like a SavedModel export, the command runs
// against it with a hard wall-clock timeout, and the scratch directory
// is removed whether or not the conversion succeeds.
package tensorflow
