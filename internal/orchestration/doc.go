// Package orchestration runs several decimal decoders concurrently on the
// same digit buffer and checks that they agree. It decouples the decoding
// from presentation via the ProgressReporter and ResultPresenter interfaces.
package orchestration
