package tests

import (
	"github.com/sarmatovd/shop-services/services/product/internal/domain"
	"github.com/sarmatovd/shop-services/services/product/internal/repository"
)

func (s *IntegrationTestSuite) createProduct(name string, price int64) int64 {
	id, err := s.ProductService.Create(s.Ctx, &domain.Product{
		Name:        name,
		Description: "test product",
		Price:       price,
	})
	s.Require().NoError(err)
	s.Require().NotZero(id)

	return id
}

func (s *IntegrationTestSuite) TestCreateAndFindByID() {
	id := s.createProduct("keyboard", 4500)

	product, err := s.ProductService.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().Equal("keyboard", product.Name)
	s.Require().Equal(int64(4500), product.Price)
}

func (s *IntegrationTestSuite) TestFindByID_NotFound() {
	_, err := s.ProductService.FindByID(s.Ctx, 9999)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}

func (s *IntegrationTestSuite) TestFindByIDs_PreservesRequestOrder() {
	first := s.createProduct("keyboard", 4500)
	second := s.createProduct("mouse", 2500)

	products, err := s.ProductService.FindByIDs(s.Ctx, []int64{second, first})
	s.Require().NoError(err)
	s.Require().Len(products, 2)
	s.Require().Equal(second, products[0].ID)
	s.Require().Equal(first, products[1].ID)
}

func (s *IntegrationTestSuite) TestFindByIDs_MissingProduct() {
	id := s.createProduct("keyboard", 4500)

	_, err := s.ProductService.FindByIDs(s.Ctx, []int64{id, 9999})
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}

func (s *IntegrationTestSuite) TestList_WithSearch() {
	s.createProduct("mechanical keyboard", 9900)
	s.createProduct("mouse", 2500)

	products, total, err := s.ProductService.List(s.Ctx, 10, 0, "keyboard")
	s.Require().NoError(err)
	s.Require().Equal(int64(1), total)
	s.Require().Len(products, 1)
	s.Require().Equal("mechanical keyboard", products[0].Name)
}

func (s *IntegrationTestSuite) TestDelete_HidesProduct() {
	id := s.createProduct("keyboard", 4500)

	s.Require().NoError(s.ProductService.Delete(s.Ctx, id))

	_, err := s.ProductService.FindByID(s.Ctx, id)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)

	s.Require().ErrorIs(s.ProductService.Delete(s.Ctx, id), repository.ErrProductNotFound)
}
