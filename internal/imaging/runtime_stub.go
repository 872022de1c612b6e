//go:build !govips || !cgo

package imaging

func Startup() error {
	return nil
}

func Shutdown() {}

func Backend() string {
	return "stdlib"
}

// SupportsProgressive is false: image/jpeg only writes baseline JPEG.
func SupportsProgressive() bool {
	return false
}

func newTransformer() Transformer {
	return stdlibTransformer{}
}
