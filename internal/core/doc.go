// Package core provides the business logic for activation code stocks.
//
// This package holds the domain rules independent of any transport. The web
// handlers and tests call it directly; the file checks themselves live in
// package codes.
//
// # Stocks and Activation Codes
//
// A digital offer that is not an event may sell activation codes. A stock
// created with codes gets its quantity from the number of codes, and its
// booking limit must leave the configured margin (7 days by default) before
// the codes expire. When only an expiration date is given, the booking limit
// is derived from it:
//
//	stock, err := svc.CreateStock(ctx, core.StockParams{
//	    OfferID:                           offerID,
//	    Price:                             "15.00",
//	    ActivationCodes:                   []string{"ABCD-1234", "EFGH-5678"},
//	    ActivationCodesExpirationDatetime: &expires,
//	})
//
// # Imports
//
// [Service.ImportCodes] appends the codes of an uploaded file to an existing
// stock. The flow is:
//
//  1. Acquire an [UploadLimiter] slot (bounded concurrency)
//  2. Check the file with the codes.Checker (size, text, rows, format, duplicates)
//  3. Lock the stock row and reject a file whose content hash was already imported
//  4. Reject codes the stock already holds, then store the rest and raise the quantity
//
// Every attempt is recorded in the import history, which
// [Service.StartHistoryScheduler] purges after the retention period.
//
// # Bookings
//
// [Service.BookActivationCode] hands out the oldest free, unexpired code of a
// stock. Concurrent bookings skip rows locked by each other, so they never
// receive the same code.
//
// # Error Handling
//
// Domain conditions are sentinel errors (ErrStockNotFound, ErrAlreadyImported,
// ...) tested with errors.Is. [MapError] turns any error into a user message
// with a support code; see error_messages.go for the reference.
package core
