// Package registry is the static catalog of extraction tasks. Each task
// couples the instruction text sent to the model with two schemas: a JSON
// Schema used to validate the model's response locally, and an equivalent
// descriptor in the model's response-schema dialect used to constrain the
// output format at generation time.
package registry

import "sort"

// Task names.
const (
	TaskInvoiceExtraction = "invoice_extraction"
	TaskClassifyPO        = "purchase_order_classification"
	TaskOrderProcessing   = "order_processing"
)

type Task struct {
	Name             string
	Instruction      string
	ValidationSchema map[string]any
	ResponseSchema   map[string]any
}

var tasks = map[string]Task{
	TaskInvoiceExtraction: {
		Name:             TaskInvoiceExtraction,
		Instruction:      invoiceExtractionInstruction,
		ValidationSchema: buildInvoiceValidationSchema(),
		ResponseSchema:   buildInvoiceResponseSchema(),
	},
	TaskClassifyPO: {
		Name:             TaskClassifyPO,
		Instruction:      classifyPOInstruction,
		ValidationSchema: buildClassificationValidationSchema(),
		ResponseSchema:   buildClassificationResponseSchema(),
	},
	// The order-processing variant reuses the purchase-order schema pair.
	TaskOrderProcessing: {
		Name:             TaskOrderProcessing,
		Instruction:      orderProcessingInstruction,
		ValidationSchema: buildClassificationValidationSchema(),
		ResponseSchema:   buildClassificationResponseSchema(),
	},
}

// Lookup returns the task definition for name.
func Lookup(name string) (Task, bool) {
	task, ok := tasks[name]
	return task, ok
}

// Names lists the registered task names in sorted order.
func Names() []string {
	out := make([]string, 0, len(tasks))
	for name := range tasks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
