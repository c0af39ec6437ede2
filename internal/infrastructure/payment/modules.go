// Package payment wires the compiled-in gateway modules.
package payment

import (
	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	"github.com/fundhive/fundhive/internal/infrastructure/payment/offline"
	"github.com/fundhive/fundhive/internal/infrastructure/payment/stripe"
	"github.com/fundhive/fundhive/internal/infrastructure/payment/wallet"
)

// BuiltinModules returns every gateway module compiled into the binary.
// Manifest files in payment.manifest_dir may override their declarations.
func BuiltinModules() []paymentgateway.Module {
	return []paymentgateway.Module{
		offline.Module(),
		stripe.Module(),
		wallet.Module(),
	}
}
