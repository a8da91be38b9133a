package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watch re-reads the config file whenever it is written and passes the new
// configuration to onChange. It returns false when there is no file to watch.
func (l *Loader) Watch(log *logrus.Logger, onChange func(*Config)) bool {
	if l.ConfigFileUsed() == "" {
		return false
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(l.v)
		if err != nil {
			log.WithError(err).WithField("file", e.Name).Warn("Ignoring invalid config change")
			return
		}
		log.WithFields(logrus.Fields{"file": e.Name, "op": e.Op.String()}).Info("Configuration reloaded")
		onChange(cfg)
	})
	l.v.WatchConfig()
	return true
}
