package domain

// InventoryRecord — запись леджера остатков, 1:1 с товаром.
// Инвариант: Available никогда не опускается ниже нуля; уменьшение выполняется
// только пайплайном заказов под блокировкой строки, увеличение — пополнением
// склада или отменой/возвратом.
type InventoryRecord struct {
	ProductID int64 `json:"id_producto"`
	Available int   `json:"cantidad_disponible"`
}
