package assert

// NotNil panics if value is nil. It is meant for constructor preconditions,
// runtime failures should be returned as errors.
func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("expected string to be non-empty")
	}
}
