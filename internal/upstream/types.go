package upstream

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Product is an administrative catalog record as the upstream API stores it,
// including cost and stock fields the storefront never shows.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"productName"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	CostPrice   decimal.Decimal `json:"costPrice"`
	Stock       int             `json:"stock"`
	Description string          `json:"description"`
	SKU         string          `json:"sku"`
}

// ProductInput is the create/update request body for products.
type ProductInput struct {
	Name        string           `json:"productName"`
	Category    string           `json:"category"`
	Price       decimal.Decimal  `json:"price"`
	CostPrice   *decimal.Decimal `json:"costPrice"`
	Stock       int              `json:"stock"`
	Description string           `json:"description"`
	SKU         string           `json:"sku"`
}

// Supplier is an upstream supplier record.
type Supplier struct {
	ID            int64  `json:"id"`
	CompanyName   string `json:"companyName"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

// SupplierInput is the create/update request body for suppliers.
type SupplierInput struct {
	CompanyName   string `json:"companyName"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

// Employee is an upstream employee record.
type Employee struct {
	ID          int64  `json:"id"`
	FullName    string `json:"fullName"`
	PositionID  int64  `json:"positionId"`
	PhoneNumber string `json:"phoneNumber"`
	HireDate    string `json:"hireDate"`
}

// EmployeeInput is the create/update request body for employees. PhoneNumber
// carries bare digits, as at checkout.
type EmployeeInput struct {
	FullName    string `json:"fullName"`
	PositionID  int64  `json:"positionId"`
	PhoneNumber string `json:"phoneNumber"`
	HireDate    string `json:"hireDate"`
}

// Position is an upstream job position record.
type Position struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Delivery is an upstream incoming-delivery record.
type Delivery struct {
	ID            int64  `json:"id"`
	SupplierID    int64  `json:"supplierId"`
	EmployeeID    int64  `json:"employeeId"`
	DriverName    string `json:"driverName"`
	DriverPhone   string `json:"driverPhone"`
	VehicleNumber string `json:"vehicleNumber"`
	Status        string `json:"status"`
	DeliveryDate  string `json:"deliveryDate"`
}

// DeliveryInput is the create/update request body for deliveries.
type DeliveryInput struct {
	SupplierID    int64  `json:"supplierId"`
	EmployeeID    int64  `json:"employeeId"`
	DriverName    string `json:"driverName"`
	DriverPhone   string `json:"driverPhone"`
	VehicleNumber string `json:"vehicleNumber"`
	Status        string `json:"status"`
}

// Order is an upstream order summary record.
type Order struct {
	ID           int64           `json:"id"`
	CustomerName string          `json:"customerName"`
	OrderDate    string          `json:"orderDate"`
	ItemsCount   int             `json:"itemsCount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Status       string          `json:"status"`
}

// TopProduct is one entry of the dashboard best-sellers list.
type TopProduct struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	SalesCount  int             `json:"salesCount"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// DashboardStats is the back-office dashboard summary.
type DashboardStats struct {
	TotalOrders      int             `json:"totalOrders"`
	CompletedOrders  int             `json:"completedOrders"`
	PendingOrders    int             `json:"pendingOrders"`
	TodayOrders      int             `json:"todayOrders"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	MonthlyRevenue   decimal.Decimal `json:"monthlyRevenue"`
	TotalProducts    int             `json:"totalProducts"`
	LowStockProducts int             `json:"lowStockProducts"`
	TopProducts      []TopProduct    `json:"topProducts"`
}

// --- jx decoders ---
//
// The upstream wire contract is fixed to camelCase keys here, at the single
// deserialization boundary. Unknown keys are skipped; absent keys leave zero
// values that the callers' defaults back-fill.

// decodeID reads an identifier that the upstream reports either as a JSON
// number or as a numeric string.
func decodeID(d *jx.Decoder) (int64, error) {
	switch d.Next() {
	case jx.Number:
		return d.Int64()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return 0, err
		}
		n, err := decimal.NewFromString(s)
		if err != nil {
			return 0, errors.Wrapf(err, "numeric string %q", s)
		}
		return n.IntPart(), nil
	case jx.Null:
		return 0, d.Null()
	default:
		return 0, errors.Errorf("unexpected id type %v", d.Next())
	}
}

// decodeDecimal reads a JSON number (or null) into a decimal without going
// through float64.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() == jx.Null {
		return decimal.Zero, d.Null()
	}
	num, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	v, err := decimal.NewFromString(num.String())
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "number %q", num.String())
	}
	return v, nil
}

// decodeStr reads a string, treating null as empty.
func decodeStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

// decodeInt reads an int, treating null as zero.
func decodeInt(d *jx.Decoder) (int, error) {
	if d.Next() == jx.Null {
		return 0, d.Null()
	}
	return d.Int()
}

func decodeProduct(d *jx.Decoder) (Product, error) {
	var p Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = decodeID(d)
		case "productName":
			p.Name, err = decodeStr(d)
		case "category":
			p.Category, err = decodeStr(d)
		case "price":
			p.Price, err = decodeDecimal(d)
		case "costPrice":
			p.CostPrice, err = decodeDecimal(d)
		case "stock":
			p.Stock, err = decodeInt(d)
		case "description":
			p.Description, err = decodeStr(d)
		case "sku":
			p.SKU, err = decodeStr(d)
		default:
			return d.Skip()
		}
		return err
	})
	return p, err
}

func decodeSupplier(d *jx.Decoder) (Supplier, error) {
	var s Supplier
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			s.ID, err = decodeID(d)
		case "companyName":
			s.CompanyName, err = decodeStr(d)
		case "contactPerson":
			s.ContactPerson, err = decodeStr(d)
		case "phone":
			s.Phone, err = decodeStr(d)
		case "email":
			s.Email, err = decodeStr(d)
		case "address":
			s.Address, err = decodeStr(d)
		default:
			return d.Skip()
		}
		return err
	})
	return s, err
}

func decodeEmployee(d *jx.Decoder) (Employee, error) {
	var e Employee
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			e.ID, err = decodeID(d)
		case "fullName":
			e.FullName, err = decodeStr(d)
		case "positionId":
			e.PositionID, err = decodeID(d)
		case "phoneNumber":
			e.PhoneNumber, err = decodeStr(d)
		case "hireDate":
			e.HireDate, err = decodeStr(d)
		default:
			return d.Skip()
		}
		return err
	})
	return e, err
}

func decodePosition(d *jx.Decoder) (Position, error) {
	var p Position
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = decodeID(d)
		case "name", "positionName":
			p.Name, err = decodeStr(d)
		default:
			return d.Skip()
		}
		return err
	})
	return p, err
}

func decodeDelivery(d *jx.Decoder) (Delivery, error) {
	var dl Delivery
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			dl.ID, err = decodeID(d)
		case "supplierId":
			dl.SupplierID, err = decodeID(d)
		case "employeeId":
			dl.EmployeeID, err = decodeID(d)
		case "driverName":
			dl.DriverName, err = decodeStr(d)
		case "driverPhone":
			dl.DriverPhone, err = decodeStr(d)
		case "vehicleNumber":
			dl.VehicleNumber, err = decodeStr(d)
		case "status":
			dl.Status, err = decodeStr(d)
		case "deliveryDate":
			dl.DeliveryDate, err = decodeStr(d)
		default:
			return d.Skip()
		}
		return err
	})
	return dl, err
}

func decodeOrder(d *jx.Decoder) (Order, error) {
	var o Order
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			o.ID, err = decodeID(d)
		case "customerName":
			o.CustomerName, err = decodeStr(d)
		case "orderDate":
			o.OrderDate, err = decodeStr(d)
		case "itemsCount":
			o.ItemsCount, err = decodeInt(d)
		case "totalAmount":
			o.TotalAmount, err = decodeDecimal(d)
		case "status":
			o.Status, err = decodeStr(d)
		default:
			return d.Skip()
		}
		return err
	})
	return o, err
}

func decodeTopProduct(d *jx.Decoder) (TopProduct, error) {
	var tp TopProduct
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			tp.ProductID, err = decodeID(d)
		case "productName":
			tp.ProductName, err = decodeStr(d)
		case "salesCount":
			tp.SalesCount, err = decodeInt(d)
		case "revenue":
			tp.Revenue, err = decodeDecimal(d)
		default:
			return d.Skip()
		}
		return err
	})
	return tp, err
}

func decodeDashboardStats(d *jx.Decoder) (DashboardStats, error) {
	var st DashboardStats
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "totalOrders":
			st.TotalOrders, err = decodeInt(d)
		case "completedOrders":
			st.CompletedOrders, err = decodeInt(d)
		case "pendingOrders":
			st.PendingOrders, err = decodeInt(d)
		case "todayOrders":
			st.TodayOrders, err = decodeInt(d)
		case "totalRevenue":
			st.TotalRevenue, err = decodeDecimal(d)
		case "monthlyRevenue":
			st.MonthlyRevenue, err = decodeDecimal(d)
		case "totalProducts":
			st.TotalProducts, err = decodeInt(d)
		case "lowStockProducts":
			st.LowStockProducts, err = decodeInt(d)
		case "topProducts":
			return d.Arr(func(d *jx.Decoder) error {
				tp, err := decodeTopProduct(d)
				if err != nil {
					return err
				}
				st.TopProducts = append(st.TopProducts, tp)
				return nil
			})
		default:
			return d.Skip()
		}
		return err
	})
	return st, err
}

func decodeCategory(d *jx.Decoder) (string, error) {
	return decodeStr(d)
}
