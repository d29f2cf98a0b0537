package partner

import (
	"context"

	"github.com/google/uuid"
	appshared "github.com/sahelbuild/backend/internal/application/shared"
	"github.com/sahelbuild/backend/internal/domain/partner"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo   partner.CustomerRepository
	defaultCountry valueobject.Country
	eventPublisher shared.EventPublisher
}

// NewCustomerService creates a new CustomerService. defaultCountry is used
// when a request does not name the customer's country.
func NewCustomerService(customerRepo partner.CustomerRepository, defaultCountry valueobject.Country) *CustomerService {
	return &CustomerService{
		customerRepo:   customerRepo,
		defaultCountry: defaultCountry,
	}
}

// SetEventPublisher sets the event publisher
func (s *CustomerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CustomerService) country(code string) (valueobject.Country, error) {
	if code == "" {
		return s.defaultCountry, nil
	}
	country, err := valueobject.ParseCountry(code)
	if err != nil {
		return "", shared.NewDomainError("INVALID_COUNTRY", err.Error())
	}
	return country, nil
}

func (s *CustomerService) checkPhoneFree(ctx context.Context, raw string, country valueobject.Country) error {
	phone, err := partner.NormalizePhone(raw, country)
	if err != nil {
		return err
	}
	exists, err := s.customerRepo.ExistsByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Customer with this phone already exists")
	}
	return nil
}

// Create registers a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	country, err := s.country(req.Country)
	if err != nil {
		return nil, err
	}
	if err := s.checkPhoneFree(ctx, req.Phone, country); err != nil {
		return nil, err
	}

	code, err := s.customerRepo.NextCode(ctx)
	if err != nil {
		return nil, err
	}
	customer, err := partner.NewCustomer(code, req.Name, req.Phone, country, partner.CustomerType(req.Type))
	if err != nil {
		return nil, err
	}
	customer.Address = req.Address
	customer.Notes = req.Notes
	if req.CreditAllowed || req.CreditLimit.IsPositive() {
		if err := customer.SetCredit(req.CreditAllowed, req.CreditLimit); err != nil {
			return nil, err
		}
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Update changes contact details and type
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	phone, err := partner.NormalizePhone(req.Phone, customer.Country)
	if err != nil {
		return nil, err
	}
	if phone != customer.Phone {
		if err := s.checkPhoneFree(ctx, req.Phone, customer.Country); err != nil {
			return nil, err
		}
	}

	if err := customer.Update(req.Name, req.Phone, partner.CustomerType(req.Type), req.Address, req.Notes); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// SetCredit changes whether the customer may buy on credit and up to what balance
func (s *CustomerService) SetCredit(ctx context.Context, id uuid.UUID, req SetCreditRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := customer.SetCredit(req.CreditAllowed, req.CreditLimit); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Deactivate hides a customer from the counter
func (s *CustomerService) Deactivate(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := customer.Deactivate(); err != nil {
		return err
	}
	return s.customerRepo.Save(ctx, customer)
}

// Activate makes a customer available at the counter again
func (s *CustomerService) Activate(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	customer.Activate()
	return s.customerRepo.Save(ctx, customer)
}

// GetByID retrieves a customer
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	customers, total, err := s.customerRepo.FindAll(ctx, partner.CustomerFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Type:     partner.CustomerType(filter.Type),
		Status:   partner.CustomerStatus(filter.Status),
		Country:  filter.Country,
		OwesOnly: filter.OwesOnly,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses, total, nil
}

func (s *CustomerService) publish(ctx context.Context, customer *partner.Customer) {
	var collector appshared.EventCollector
	collector.Collect(customer)
	collector.Publish(ctx, s.eventPublisher)
}
