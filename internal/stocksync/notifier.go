package stocksync

import "go.uber.org/zap"

// LogNotifier routes notices to the logger. Interactive clients plug in
// their own Notifier instead.
type LogNotifier struct {
	Log *zap.Logger
}

func (n *LogNotifier) Warn(msg string)  { n.Log.Warn(msg) }
func (n *LogNotifier) Error(msg string) { n.Log.Error(msg) }
