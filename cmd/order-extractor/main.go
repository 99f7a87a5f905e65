// Command order-extractor reads purchase-order documents and writes their orders and
// products to spreadsheets.
package main

func main() {
	Execute()
}
