// Package billing provides domain models for freight rating and customer invoicing.
//
// This package implements the billing bounded context, which is responsible for:
//   - Pricing freight orders from their measures (actual weight or volumetric)
//     through the rating rules, including ordered cost/discount adjustments
//   - Issuing invoices over a customer's uninvoiced orders and tracking
//     paid/due totals as payments are applied and released
//   - Granting and redeeming loyalty points against invoice totals
//
// Key Aggregates:
//   - Order: a freight shipment's billing subset; its total is recomputed on
//     any change to measures, rates or adjustments
//   - Invoice: snapshot of rated orders with total/paid/due bookkeeping and a
//     draft/issued/partially_paid/paid/void lifecycle
//   - CustomerPoints: a customer's redeemable point balance
//
// Domain Services:
//   - RateOrder / RateInvoice: pure pricing computations shared by orders and
//     invoice regeneration
//
// The billing domain integrates with:
//   - Ledger domain: payments recorded there apply to invoice due totals
//   - Account domain: the paying customer accounts referenced by transactions
package billing
