package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ TokenIssuer      = (*Authenticator)(nil)
	_ RequestValidator = (*StructValidator)(nil)
	_ ConfigProvider   = (*CfgxConfigProvider)(nil)
	_ OptionsResolver  = GoOptionsResolver{}
	_ RawConfigLoader  = (*EnvConfigLoader)(nil)
	_ ActivityStore    = (*OperationalActivitySink)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
