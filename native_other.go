//go:build !windows

package kinten

import "context"

// probeExcel reports that COM automation is unavailable off Windows.
func probeExcel(context.Context) error {
	return ErrUnsupportedPlatform
}

// excelDriver refuses to start off Windows.
type excelDriver struct{}

func newExcelDriver() driver { return excelDriver{} }

func (excelDriver) Strategy() Strategy { return StrategyNative }

func (excelDriver) Begin(context.Context) (session, error) {
	return nil, ErrUnsupportedPlatform
}
