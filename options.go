package lzh

import "github.com/sirupsen/logrus"

// Options configures codecs, Decompress and CompressTokens.
type Options struct {
	// Logger receives Debug events (tree rescaling, offset alphabet growth, flushes).
	// Nil means logrus.StandardLogger().
	Logger logrus.FieldLogger
	// Checksum, when set, is fed every byte the expander produces. Codecs ignore it.
	Checksum Checksum
}

// DefaultOptions returns options for default behavior: standard logger, no checksum.
func DefaultOptions() *Options {
	return &Options{
		Logger: logrus.StandardLogger(),
	}
}

// normalize returns opts with defaults filled in.
func normalize(opts *Options) *Options {
	if opts == nil {
		return DefaultOptions()
	}
	if opts.Logger == nil {
		o := *opts
		o.Logger = logrus.StandardLogger()

		return &o
	}

	return opts
}

// logger returns a logger scoped to method.
func (o *Options) logger(m Method) logrus.FieldLogger {
	return o.Logger.WithField("method", string(m))
}
